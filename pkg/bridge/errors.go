/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package bridge

import (
	"fmt"
)

// ErrConnection returned by transports when a send or receive fails.
// The session is unusable afterwards.
type ErrConnection struct {
	Op  string
	Err error
}

func (e ErrConnection) Error() string {
	return fmt.Sprintf("Bridge connection error during %s: %s", e.Op, e.Err)
}

func (e ErrConnection) Unwrap() error {
	return e.Err
}

// ErrBadResponse returned when a query response can not be parsed
type ErrBadResponse struct {
	What string
}

func (e ErrBadResponse) Error() string {
	return fmt.Sprintf("Malformed bridge response: %s", e.What)
}
