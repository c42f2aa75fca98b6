package leader

import (
	"context"
	"testing"
	"time"

	coordinationv1 "k8s.io/api/coordination/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

var testParams = Params{
	HolderID:  "replica-a",
	LeaseName: "alert-deleter",
	Namespace: "default",
	TTL:       10 * time.Second,
}

func existingLease(holder string, renewedAt time.Time) *coordinationv1.Lease {
	ttl := int32(10)
	renew := metav1.NewMicroTime(renewedAt)
	return &coordinationv1.Lease{
		ObjectMeta: metav1.ObjectMeta{Name: testParams.LeaseName, Namespace: testParams.Namespace},
		Spec: coordinationv1.LeaseSpec{
			HolderIdentity:       &holder,
			LeaseDurationSeconds: &ttl,
			RenewTime:            &renew,
		},
	}
}

func TestTryAcquireCreatesLease(t *testing.T) {
	cs := fake.NewSimpleClientset()
	l := NewLeaseLock(cs, testParams)

	acquired, err := l.TryAcquireOrRenew(context.Background())
	if err != nil || !acquired {
		t.Fatalf("acquire = (%v, %v), want (true, nil)", acquired, err)
	}

	lease, err := cs.CoordinationV1().Leases("default").Get(context.Background(), "alert-deleter", metav1.GetOptions{})
	if err != nil {
		t.Fatalf("lease not created: %v", err)
	}
	if lease.Spec.HolderIdentity == nil || *lease.Spec.HolderIdentity != "replica-a" {
		t.Fatalf("holder = %v, want replica-a", lease.Spec.HolderIdentity)
	}
}

func TestTryAcquireRenewsOwnLease(t *testing.T) {
	l := NewLeaseLock(fake.NewSimpleClientset(existingLease("replica-a", time.Now())), testParams)
	acquired, err := l.TryAcquireOrRenew(context.Background())
	if err != nil || !acquired {
		t.Fatalf("renew of own lease = (%v, %v), want (true, nil)", acquired, err)
	}
}

func TestTryAcquireRespectsLiveLease(t *testing.T) {
	l := NewLeaseLock(fake.NewSimpleClientset(existingLease("replica-b", time.Now())), testParams)
	acquired, err := l.TryAcquireOrRenew(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Fatalf("acquired a lease another replica renewed within its TTL")
	}
}

func TestTryAcquireTakesOverExpiredLease(t *testing.T) {
	stale := time.Now().Add(-time.Minute) // well past the 10s TTL
	cs := fake.NewSimpleClientset(existingLease("replica-b", stale))
	l := NewLeaseLock(cs, testParams)

	acquired, err := l.TryAcquireOrRenew(context.Background())
	if err != nil || !acquired {
		t.Fatalf("takeover = (%v, %v), want (true, nil)", acquired, err)
	}
	lease, _ := cs.CoordinationV1().Leases("default").Get(context.Background(), "alert-deleter", metav1.GetOptions{})
	if *lease.Spec.HolderIdentity != "replica-a" {
		t.Fatalf("holder after takeover = %q, want replica-a", *lease.Spec.HolderIdentity)
	}
	if lease.Spec.LeaseTransitions == nil || *lease.Spec.LeaseTransitions != 1 {
		t.Fatalf("transitions = %v, want 1", lease.Spec.LeaseTransitions)
	}
}

func TestExpiryBoundary(t *testing.T) {
	// A lease renewed just inside the TTL is still live.
	l := NewLeaseLock(fake.NewSimpleClientset(existingLease("replica-b", time.Now().Add(-9*time.Second))), testParams)
	acquired, err := l.TryAcquireOrRenew(context.Background())
	if err != nil || acquired {
		t.Fatalf("lease 9s old with 10s TTL must still be held, got (%v, %v)", acquired, err)
	}
}
