package remediate

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/jrcichra/alert-deleter/internal/logger"
)

func TestDeletePod(t *testing.T) {
	cs := fake.NewSimpleClientset(&corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "api-0", Namespace: "prod"},
	})
	k := NewPodKiller(logger.New("error"), cs)

	if err := k.DeletePod(context.Background(), "prod", "api-0"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := cs.CoreV1().Pods("prod").Get(context.Background(), "api-0", metav1.GetOptions{})
	if !apierrors.IsNotFound(err) {
		t.Fatalf("pod still there after delete: err=%v", err)
	}
}

func TestDeletePodMissing(t *testing.T) {
	k := NewPodKiller(logger.New("error"), fake.NewSimpleClientset())
	if err := k.DeletePod(context.Background(), "prod", "nope"); err == nil {
		t.Fatalf("want error deleting missing pod, got nil")
	}
}
