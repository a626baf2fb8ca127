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
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/netkit-sh/netkit/pkg/apis/v1alpha1"
)

func Name(network *v1alpha1.Network, suffixes ...string) *string {
	return NameFrom(network.Name, suffixes...)
}

func NameFrom(name string, suffixes ...string) *string {
	return aws.String(strings.Join(append([]string{name}, suffixes...), "-"))
}
