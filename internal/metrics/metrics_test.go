package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveUpstream(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequests.WithLabelValues("accounts.list", OutcomeSuccess))
	ObserveUpstream("accounts.list", OutcomeSuccess, 15*time.Millisecond)
	after := testutil.ToFloat64(upstreamRequests.WithLabelValues("accounts.list", OutcomeSuccess))

	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}
}

func TestConsentAndGauges(t *testing.T) {
	before := testutil.ToFloat64(consentOutcomes.WithLabelValues(ConsentDeclined))
	ObserveConsent(ConsentDeclined)
	if got := testutil.ToFloat64(consentOutcomes.WithLabelValues(ConsentDeclined)) - before; got != 1 {
		t.Errorf("declined delta = %v, want 1", got)
	}

	SetBusinessesDiscovered(4)
	if got := testutil.ToFloat64(businessesDiscovered); got != 4 {
		t.Errorf("businesses_discovered = %v, want 4", got)
	}

	SetSDKReady(true)
	if got := testutil.ToFloat64(sdkReady); got != 1 {
		t.Errorf("identity_sdk_ready = %v, want 1", got)
	}
	SetSDKReady(false)
	if got := testutil.ToFloat64(sdkReady); got != 0 {
		t.Errorf("identity_sdk_ready = %v, want 0", got)
	}
}
