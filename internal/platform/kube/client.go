// Package kube implements the control-plane contract against a live
// k3s cluster through the Kubernetes API.
package kube

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/imamik/k3fleet/internal/cluster"
)

const controlPlaneLabel = "node-role.kubernetes.io/control-plane"

// Client implements cluster.ControlPlaneClient against the Kubernetes
// API of the k3s control plane.
type Client struct {
	clientset kubernetes.Interface
}

// NewClient creates a client from a kubeconfig file. requestTimeout
// bounds every API call the client issues; zero leaves calls unbounded.
func NewClient(kubeconfigPath string, requestTimeout time.Duration) (*Client, error) {
	config, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}
	config.Timeout = requestTimeout

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &Client{clientset: clientset}, nil
}

// NewClientFromClientset wraps an existing clientset. Tests use this
// with the client-go fake.
func NewClientFromClientset(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// ListMembers implements cluster.ControlPlaneClient. An unreachable API
// server is a *cluster.ConnectivityError, never an empty membership.
func (c *Client) ListMembers(ctx context.Context) ([]cluster.Member, error) {
	nodeList, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, &cluster.ConnectivityError{Target: "kubernetes API server", Err: err}
	}

	members := make([]cluster.Member, 0, len(nodeList.Items))
	for _, node := range nodeList.Items {
		_, controlPlane := node.Labels[controlPlaneLabel]
		members = append(members, cluster.Member{
			Name:         node.Name,
			Ready:        isNodeReady(&node),
			Schedulable:  !node.Spec.Unschedulable,
			ControlPlane: controlPlane,
		})
	}
	return members, nil
}

// Cordon implements cluster.ControlPlaneClient. Cordoning an absent or
// already-cordoned member is a success.
func (c *Client) Cordon(ctx context.Context, name string) error {
	patch := []byte(`{"spec":{"unschedulable":true}}`)
	_, err := c.clientset.CoreV1().Nodes().Patch(ctx, name, types.StrategicMergePatchType, patch, metav1.PatchOptions{})
	if apierrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to cordon node %s: %w", name, err)
	}
	return nil
}

// DeleteMember implements cluster.ControlPlaneClient. Deleting an
// already-absent member is a success.
func (c *Client) DeleteMember(ctx context.Context, name string) error {
	err := c.clientset.CoreV1().Nodes().Delete(ctx, name, metav1.DeleteOptions{})
	if apierrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete node %s: %w", name, err)
	}
	return nil
}

func isNodeReady(node *corev1.Node) bool {
	for _, condition := range node.Status.Conditions {
		if condition.Type == corev1.NodeReady {
			return condition.Status == corev1.ConditionTrue
		}
	}
	return false
}
