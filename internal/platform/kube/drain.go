package kube

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	policyv1 "k8s.io/api/policy/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/imamik/k3fleet/internal/cluster"
	"github.com/imamik/k3fleet/internal/util/async"
)

const drainPollInterval = 1 * time.Second

// Drain implements cluster.ControlPlaneClient. It evicts every
// evictable workload from the node and waits until they are gone,
// re-issuing evictions each poll until the timeout. DaemonSet-managed
// and mirror pods stay, matching kubectl's --ignore-daemonsets
// behavior. An eviction held back by a PodDisruptionBudget is retried
// on the next poll rather than failing the drain. On timeout it
// returns *cluster.DrainTimeoutError with the number of pods still
// pending; the caller decides whether to proceed forcibly.
func (c *Client) Drain(ctx context.Context, name string, timeout time.Duration) error {
	var pending int
	err := wait.PollUntilContextTimeout(ctx, drainPollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		remaining, err := c.evictablePods(ctx, name)
		if err != nil {
			return false, err
		}
		pending = len(remaining)
		if pending == 0 {
			return true, nil
		}
		if err := c.evictAll(ctx, remaining); err != nil {
			return false, err
		}
		return false, nil
	})
	if wait.Interrupted(err) {
		return &cluster.DrainTimeoutError{Node: name, Timeout: timeout, Pending: pending}
	}
	if err != nil {
		return fmt.Errorf("failed to drain node %s: %w", name, err)
	}
	return nil
}

// evictAll issues evictions for all pods in parallel. An eviction
// rejected with 429 means a disruption budget blocks it right now;
// the pod stays pending and the next poll retries, with the drain
// timeout as the overall bound.
func (c *Client) evictAll(ctx context.Context, pods []corev1.Pod) error {
	tasks := make([]async.Task, 0, len(pods))
	for _, pod := range pods {
		tasks = append(tasks, async.Task{
			Name: pod.Namespace + "/" + pod.Name,
			Func: func(ctx context.Context) error {
				eviction := &policyv1.Eviction{
					ObjectMeta: metav1.ObjectMeta{
						Name:      pod.Name,
						Namespace: pod.Namespace,
					},
				}
				err := c.clientset.PolicyV1().Evictions(pod.Namespace).Evict(ctx, eviction)
				if apierrors.IsNotFound(err) || apierrors.IsTooManyRequests(err) {
					return nil
				}
				return err
			},
		})
	}

	if err := async.RunParallel(ctx, tasks); err != nil {
		return fmt.Errorf("failed to evict pod %w", err)
	}
	return nil
}

// evictablePods lists the pods on a node that a drain must move:
// everything except DaemonSet-managed and mirror pods.
func (c *Client) evictablePods(ctx context.Context, name string) ([]corev1.Pod, error) {
	podList, err := c.clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{
		FieldSelector: "spec.nodeName=" + name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods on node %s: %w", name, err)
	}

	var pods []corev1.Pod
	for _, pod := range podList.Items {
		if isDaemonSetPod(&pod) || isMirrorPod(&pod) {
			continue
		}
		if pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed {
			continue
		}
		pods = append(pods, pod)
	}
	return pods, nil
}

func isDaemonSetPod(pod *corev1.Pod) bool {
	for _, ref := range pod.OwnerReferences {
		if ref.Kind == "DaemonSet" {
			return true
		}
	}
	return false
}

func isMirrorPod(pod *corev1.Pod) bool {
	_, ok := pod.Annotations[corev1.MirrorPodAnnotationKey]
	return ok
}
