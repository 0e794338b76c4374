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

import (
	"github.com/veridian-systems/evidentia/core"
)

// MarshalEvidenceRecord serializes an EvidenceRecord to bytes.
func MarshalEvidenceRecord(record *core.EvidenceRecord) []byte {
	buf := make([]byte, core.EvidenceRecordMUS.Size(*record))
	core.EvidenceRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalEvidenceRecord deserializes an EvidenceRecord from bytes.
func UnmarshalEvidenceRecord(data []byte) (*core.EvidenceRecord, error) {
	record, _, err := core.EvidenceRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalSilverRecord serializes a SilverEvidenceRecord to bytes.
func MarshalSilverRecord(record *core.SilverEvidenceRecord) []byte {
	buf := make([]byte, core.SilverEvidenceRecordMUS.Size(*record))
	core.SilverEvidenceRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalSilverRecord deserializes a SilverEvidenceRecord from bytes.
func UnmarshalSilverRecord(data []byte) (*core.SilverEvidenceRecord, error) {
	record, _, err := core.SilverEvidenceRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}
