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

package discovery

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/netkit-sh/netkit/pkg/awsprovider"
)

// Zones lists the region's available zone names sorted lexically, giving a
// stable zone index to name mapping for the lifetime of the region.
func Zones(ctx context.Context, client *awsprovider.EC2) ([]string, error) {
	describeAvailabilityZonesOutput, err := client.DescribeAvailabilityZonesWithContext(ctx, &ec2.DescribeAvailabilityZonesInput{
		Filters: []*ec2.Filter{{Name: aws.String("state"), Values: []*string{aws.String("available")}}},
	})
	if err != nil {
		return nil, fmt.Errorf("describing availability zones, %w", err)
	}
	zones := make([]string, 0, len(describeAvailabilityZonesOutput.AvailabilityZones))
	for _, zone := range describeAvailabilityZonesOutput.AvailabilityZones {
		zones = append(zones, aws.StringValue(zone.ZoneName))
	}
	sort.Strings(zones)
	return zones, nil
}
