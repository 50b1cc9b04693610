package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/formasuite/trainerdesk/internal/core/domain"
	"github.com/formasuite/trainerdesk/internal/core/ports"
)

var (
	_ ports.SessionMetrics = Recorder{}
	_ ports.ExtrasMetrics  = Recorder{}
)

func TestRecorder_Session(t *testing.T) {
	var r Recorder

	before := testutil.ToFloat64(SignInTotal.WithLabelValues("persist_failed"))
	r.SignIn("persist_failed")
	if got := testutil.ToFloat64(SignInTotal.WithLabelValues("persist_failed")); got != before+1 {
		t.Fatalf("sign_in_total{persist_failed} = %v, want %v", got, before+1)
	}

	in := testutil.ToFloat64(AuthStateChangesTotal.WithLabelValues("signed_in"))
	out := testutil.ToFloat64(AuthStateChangesTotal.WithLabelValues("signed_out"))
	r.StateChanged(true)
	r.StateChanged(false)
	r.StateChanged(false)
	if got := testutil.ToFloat64(AuthStateChangesTotal.WithLabelValues("signed_in")); got != in+1 {
		t.Fatalf("signed_in = %v, want %v", got, in+1)
	}
	if got := testutil.ToFloat64(AuthStateChangesTotal.WithLabelValues("signed_out")); got != out+2 {
		t.Fatalf("signed_out = %v, want %v", got, out+2)
	}

	r.Observers(3)
	if got := testutil.ToFloat64(AuthObservers); got != 3 {
		t.Fatalf("auth_observers = %v, want 3", got)
	}
}

func TestRecorder_Extras(t *testing.T) {
	var r Recorder

	sets := testutil.ToFloat64(ExtrasMutationsTotal.WithLabelValues("formateur", "set"))
	r.Mutation(domain.KindFormateur, "set", 7)
	if got := testutil.ToFloat64(ExtrasMutationsTotal.WithLabelValues("formateur", "set")); got != sets+1 {
		t.Fatalf("mutations = %v, want %v", got, sets+1)
	}
	if got := testutil.ToFloat64(ExtrasEntries.WithLabelValues("formateur")); got != 7 {
		t.Fatalf("entries = %v, want 7", got)
	}

	ok := testutil.ToFloat64(ExtrasWritesTotal.WithLabelValues("ok"))
	failed := testutil.ToFloat64(ExtrasWritesTotal.WithLabelValues("error"))
	r.Write(10*time.Millisecond, nil)
	r.Write(time.Millisecond, errors.New("disk full"))
	if got := testutil.ToFloat64(ExtrasWritesTotal.WithLabelValues("ok")); got != ok+1 {
		t.Fatalf("writes{ok} = %v, want %v", got, ok+1)
	}
	if got := testutil.ToFloat64(ExtrasWritesTotal.WithLabelValues("error")); got != failed+1 {
		t.Fatalf("writes{error} = %v, want %v", got, failed+1)
	}
}
