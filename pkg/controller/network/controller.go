/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package network builds a VPC-based network topology as one reusable unit,
// either by provisioning it from scratch or by adopting resources that
// already exist. Provisioning is modeled as a set of resources that each
// requeue until the status fields they depend on have been resolved by
// another resource, so ordering is declared rather than hardcoded and
// independent resources run concurrently.
package network

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/imdario/mergo"
	"github.com/netkit-sh/netkit/pkg/apis/v1alpha1"
	"github.com/netkit-sh/netkit/pkg/awsprovider"
	"github.com/netkit-sh/netkit/pkg/utils/discovery"
	"go.uber.org/multierr"
	"k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/util/workqueue"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

func NewController(EC2 *awsprovider.EC2) *Controller {
	return &Controller{
		RequeueDelay: time.Second,
		Resources: []Resource{
			&VPC{EC2: EC2},
			&RouteTable{EC2: EC2},
			&InternetGateway{EC2: EC2},
			&Subnets{EC2: EC2},
			&ElasticIPs{EC2: EC2},
			&NatGateways{EC2: EC2},
			&PrivateRouteTables{EC2: EC2},
		},
	}
}

type Controller struct {
	sync.RWMutex
	Resources    []Resource
	RequeueDelay time.Duration
}

type Resource interface {
	Create(context.Context, *v1alpha1.Network) (reconcile.Result, error)
}

// Provision resolves the request into one of two builders: adoption binds the
// topology to resources the caller already owns without touching the cloud,
// construction reconciles the full resource graph. Validation failures and
// provisioning failures both leave the network without a finished topology.
func (c *Controller) Provision(ctx context.Context, network *v1alpha1.Network) error {
	network.SetDefaults(ctx)
	if errs := network.Validate(ctx); errs != nil {
		return fmt.Errorf("validating network, %w", errs)
	}
	if network.Spec.Adoption() {
		adopt(network)
		return nil
	}
	fingerprint, err := discovery.Fingerprint(network)
	if err != nil {
		return err
	}
	network.Status.Fingerprint = aws.String(fingerprint)
	return c.Reconcile(ctx, network)
}

// adopt fills the topology from the spec's pre-existing resource ids.
func adopt(network *v1alpha1.Network) {
	network.Status.Infrastructure = v1alpha1.InfrastructureStatus{
		VPCID:            network.Spec.VPCID,
		SecurityGroupIDs: network.Spec.SecurityGroupIDs,
		SubnetIDs:        aws.StringSlice(network.Spec.SubnetIDs),
		PublicSubnetIDs:  aws.StringSlice(network.Spec.PublicSubnetIDs),
	}
}

// Reconcile drives every resource until it reports completion. The first
// resource failure cancels the context so the whole construction fails as a
// unit; waiting resources observe the cancellation and stop requeueing.
func (c *Controller) Reconcile(ctx context.Context, network *v1alpha1.Network) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errs := make([]error, len(c.Resources))
	workqueue.ParallelizeUntil(ctx, len(c.Resources), len(c.Resources), func(i int) {
		for {
			resource := c.Resources[i]
			c.RLock()
			mutable := network.DeepCopy()
			c.RUnlock()
			result, err := resource.Create(ctx, mutable)
			if err != nil {
				errs[i] = fmt.Errorf("reconciling %s, %w", reflect.ValueOf(resource).Elem().Type(), err)
				cancel()
				return
			}
			c.Lock()
			runtime.Must(mergo.Merge(network, mutable))
			c.Unlock()
			if !result.Requeue && result.RequeueAfter == 0 {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(result.RequeueAfter + c.RequeueDelay):
			}
		}
	})
	return multierr.Combine(errs...)
}
