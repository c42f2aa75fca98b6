package remediate

import (
	"context"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/jrcichra/alert-deleter/internal/logger"
)

// PodKiller deletes pods with default deletion parameters (no grace-period
// override, no force). The controller that owns the pod recreates it.
type PodKiller struct {
	log *logger.Logger
	cs  kubernetes.Interface
}

func NewPodKiller(log *logger.Logger, cs kubernetes.Interface) *PodKiller {
	return &PodKiller{log: log, cs: cs}
}

func (k *PodKiller) DeletePod(ctx context.Context, namespace, name string) error {
	if err := k.cs.CoreV1().Pods(namespace).Delete(ctx, name, metav1.DeleteOptions{}); err != nil {
		return err
	}
	k.log.Info().Str("ns", namespace).Str("pod", name).Msg("deleted pod")
	return nil
}
