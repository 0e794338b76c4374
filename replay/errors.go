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

package replay

import "errors"

var (
	// ErrReplayMiss indicates a cache miss while running in replay mode.
	// This error is fatal and non-retryable: replay mode guarantees that
	// no live external call is ever made.
	ErrReplayMiss = errors.New("cache miss in replay mode")

	// ErrUnknownMode indicates an unrecognized cache mode string.
	ErrUnknownMode = errors.New("unknown cache mode")

	// ErrEntryCorrupt indicates an entry file that could not be decoded.
	ErrEntryCorrupt = errors.New("corrupt cache entry")
)
