package workercontroller

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	autoscalingv1 "k8s.io/api/autoscaling/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// K8sScale controls a Deployment's replica count between 0 and 1 through
// the Scale subresource, per SPEC_FULL.md §4.4.2. After a change it polls
// the Scale subresource's desired replica count (spec.replicas); pod
// readiness and status.replicas are not checked.
type K8sScale struct {
	Namespace  string
	Deployment string
	Log        zerolog.Logger

	client *kubernetes.Clientset
}

func NewK8sScale(namespace, deployment string, log zerolog.Logger) (*K8sScale, error) {
	cfg, err := rest.InClusterConfig()
	if err != nil {
		return nil, errors.Wrap(err, "workercontroller/k8sscale: load in-cluster config")
	}
	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "workercontroller/k8sscale: build clientset")
	}
	return &K8sScale{Namespace: namespace, Deployment: deployment, Log: log, client: cs}, nil
}

func (k *K8sScale) currentReplicas(ctx context.Context) (int32, error) {
	scale, err := k.client.AppsV1().Deployments(k.Namespace).GetScale(ctx, k.Deployment, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "workercontroller/k8sscale: get scale")
	}
	return scale.Spec.Replicas, nil
}

func (k *K8sScale) setReplicas(ctx context.Context, n int32) error {
	scale := &autoscalingv1.Scale{
		ObjectMeta: metav1.ObjectMeta{Name: k.Deployment, Namespace: k.Namespace},
		Spec:       autoscalingv1.ScaleSpec{Replicas: n},
	}
	_, err := k.client.AppsV1().Deployments(k.Namespace).UpdateScale(ctx, k.Deployment, scale, metav1.UpdateOptions{})
	return err
}

func (k *K8sScale) IsRunning(ctx context.Context) (bool, error) {
	n, err := k.currentReplicas(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (k *K8sScale) EnsureRunning(ctx context.Context) error {
	n, err := k.currentReplicas(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if err := k.setReplicas(ctx, 1); err != nil {
		return errors.Wrap(err, "workercontroller/k8sscale: scale up")
	}
	k.Log.Info().Str("deployment", k.Deployment).Msg("scaled worker deployment to 1 replica")
	return k.waitFor(ctx, func(n int32) bool { return n > 0 })
}

func (k *K8sScale) EnsureStopped(ctx context.Context, grace time.Duration) error {
	n, err := k.currentReplicas(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if err := k.setReplicas(ctx, 0); err != nil {
		return errors.Wrap(err, "workercontroller/k8sscale: scale down")
	}
	k.Log.Info().Str("deployment", k.Deployment).Msg("scaled worker deployment to 0 replicas")
	ctx, cancel := context.WithTimeout(ctx, grace)
	defer cancel()
	return k.waitFor(ctx, func(n int32) bool { return n == 0 })
}

func (k *K8sScale) waitFor(ctx context.Context, ok func(int32) bool) error {
	t := time.NewTicker(500 * time.Millisecond)
	defer t.Stop()
	for {
		n, err := k.currentReplicas(ctx)
		if err == nil && ok(n) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
