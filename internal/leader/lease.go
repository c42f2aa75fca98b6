package leader

import (
	"context"
	"fmt"
	"time"

	coordinationv1 "k8s.io/api/coordination/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Params identifies the shared lease and this replica's claim on it.
type Params struct {
	HolderID  string
	LeaseName string
	Namespace string
	TTL       time.Duration
}

// LeaseLock wraps acquire/renew semantics over a coordination.k8s.io/v1 Lease.
// Every call answers one question: does this replica hold leadership now.
type LeaseLock struct {
	cs  kubernetes.Interface
	p   Params
	now func() time.Time // swapped in tests
}

func NewLeaseLock(cs kubernetes.Interface, p Params) *LeaseLock {
	return &LeaseLock{cs: cs, p: p, now: time.Now}
}

func (l *LeaseLock) Params() Params { return l.p }

// TryAcquireOrRenew creates the lease if absent, renews it if we hold it, and
// takes it over if the current holder let it expire. Returns whether this
// replica holds the lease after the call. API errors are returned as-is; the
// caller decides whether they are fatal.
func (l *LeaseLock) TryAcquireOrRenew(ctx context.Context) (bool, error) {
	leases := l.cs.CoordinationV1().Leases(l.p.Namespace)
	now := metav1.NewMicroTime(l.now())
	ttlSecs := int32(l.p.TTL.Seconds())

	lease, err := leases.Get(ctx, l.p.LeaseName, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		lease = &coordinationv1.Lease{
			ObjectMeta: metav1.ObjectMeta{Name: l.p.LeaseName, Namespace: l.p.Namespace},
			Spec: coordinationv1.LeaseSpec{
				HolderIdentity:       &l.p.HolderID,
				LeaseDurationSeconds: &ttlSecs,
				AcquireTime:          &now,
				RenewTime:            &now,
			},
		}
		if _, err := leases.Create(ctx, lease, metav1.CreateOptions{}); err != nil {
			return false, fmt.Errorf("create lease: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get lease: %w", err)
	}

	holder := ""
	if lease.Spec.HolderIdentity != nil {
		holder = *lease.Spec.HolderIdentity
	}

	if holder != l.p.HolderID {
		if !l.expired(lease) {
			return false, nil // someone else holds a live lease
		}
		// Previous holder went silent past the TTL; take over.
		lease.Spec.HolderIdentity = &l.p.HolderID
		lease.Spec.AcquireTime = &now
		transitions := int32(0)
		if lease.Spec.LeaseTransitions != nil {
			transitions = *lease.Spec.LeaseTransitions
		}
		transitions++
		lease.Spec.LeaseTransitions = &transitions
	}

	lease.Spec.LeaseDurationSeconds = &ttlSecs
	lease.Spec.RenewTime = &now
	if _, err := leases.Update(ctx, lease, metav1.UpdateOptions{}); err != nil {
		return false, fmt.Errorf("update lease: %w", err)
	}
	return true, nil
}

func (l *LeaseLock) expired(lease *coordinationv1.Lease) bool {
	if lease.Spec.RenewTime == nil {
		return true
	}
	ttl := l.p.TTL
	if lease.Spec.LeaseDurationSeconds != nil {
		ttl = time.Duration(*lease.Spec.LeaseDurationSeconds) * time.Second
	}
	return l.now().After(lease.Spec.RenewTime.Add(ttl))
}
