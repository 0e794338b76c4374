// Copyright 2025 Veridian Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package partition

import (
	"path/filepath"

	"github.com/veridian-systems/evidentia/storage"
)

// NewTempStores creates bronze and silver stores under dir for testing.
// Returns bronzeStore, silverStore, and error. Caller must close both when
// done.
func NewTempStores(dir string) (storage.BronzeStore, storage.SilverStore, error) {
	bronze, err := NewBronze(filepath.Join(dir, "bronze"))
	if err != nil {
		return nil, nil, err
	}

	silver, err := NewSilver(filepath.Join(dir, "silver"))
	if err != nil {
		bronze.Close()
		return nil, nil, err
	}

	return bronze, silver, nil
}
