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

package network

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/netkit-sh/netkit/pkg/apis/v1alpha1"
	"github.com/netkit-sh/netkit/pkg/awsprovider"
	"github.com/netkit-sh/netkit/pkg/utils/discovery"
	"go.uber.org/multierr"
	"k8s.io/client-go/util/workqueue"
	"knative.dev/pkg/logging"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

// ElasticIPs allocates one address per zone for the NAT gateways. Public
// topologies have no NAT gateways and allocate nothing.
type ElasticIPs struct {
	EC2 *awsprovider.EC2
}

func (e *ElasticIPs) Create(ctx context.Context, network *v1alpha1.Network) (reconcile.Result, error) {
	if !network.Spec.Private() {
		return reconcile.Result{}, nil
	}
	zones := network.Spec.Zones()
	elasticIPIDs := make([]*string, zones)
	errs := make([]error, zones)
	workqueue.ParallelizeUntil(ctx, zones, zones, func(i int) {
		elasticIPIDs[i], errs[i] = e.ensure(ctx, network, i)
	})
	if err := multierr.Combine(errs...); err != nil {
		return reconcile.Result{}, err
	}
	network.Status.Infrastructure.ElasticIPIDs = elasticIPIDs
	return reconcile.Result{}, nil
}

func (e *ElasticIPs) ensure(ctx context.Context, network *v1alpha1.Network, zone int) (*string, error) {
	name := discovery.Name(network, "nat", fmt.Sprint(zone))
	describeAddressesOutput, err := e.EC2.DescribeAddressesWithContext(ctx, &ec2.DescribeAddressesInput{Filters: discovery.Filters(network, name)})
	if err != nil {
		return nil, fmt.Errorf("describing addresses, %w", err)
	}
	if len(describeAddressesOutput.Addresses) > 0 {
		logging.FromContext(ctx).Debugf("Found address %s", aws.StringValue(describeAddressesOutput.Addresses[0].PublicIp))
		return describeAddressesOutput.Addresses[0].AllocationId, nil
	}
	allocateAddressOutput, err := e.EC2.AllocateAddressWithContext(ctx, &ec2.AllocateAddressInput{
		Domain:            aws.String(ec2.DomainTypeVpc),
		TagSpecifications: discovery.Tags(network, ec2.ResourceTypeElasticIp, name),
	})
	if err != nil {
		return nil, fmt.Errorf("allocating address, %w", err)
	}
	logging.FromContext(ctx).Infof("Created address %s", aws.StringValue(allocateAddressOutput.PublicIp))
	return allocateAddressOutput.AllocationId, nil
}
