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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record or partition was not found.
	ErrNotFound = errors.New("record not found")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData indicates that a segment file ended mid-record.
	ErrTruncatedData = errors.New("truncated data")

	// ErrSegmentExists indicates an attempt to overwrite an existing
	// segment file; segments are append-only and write-once.
	ErrSegmentExists = errors.New("segment file already exists")

	// ErrStorageClosed indicates that the store is closed.
	ErrStorageClosed = errors.New("storage is closed")
)
