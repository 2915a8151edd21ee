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

package model

import (
	"fmt"
)

// ErrUnknownModel returned when the catalog has no entry for a model name
type ErrUnknownModel struct {
	Name string
}

func (e ErrUnknownModel) Error() string {
	return fmt.Sprintf("Unknown instrument model: %s", e.Name)
}

// ErrInvalidModel returned when a catalog entry is inconsistent
type ErrInvalidModel struct {
	Name string
	What string
}

func (e ErrInvalidModel) Error() string {
	return fmt.Sprintf("Invalid model description %s: %s", e.Name, e.What)
}
