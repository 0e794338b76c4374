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


package core

import "errors"

// Domain validation errors
var (
	// ErrValidation indicates an EvidenceRecord failed validation.
	// Violating records are rejected before any bytes reach storage.
	ErrValidation = errors.New("invalid evidence record")

	// ErrInvalidTheme indicates the theme is not in the closed theme set.
	ErrInvalidTheme = errors.New("theme not in closed set")

	// ErrInvalidStage indicates a stage indicator outside 0-4.
	ErrInvalidStage = errors.New("stage indicator out of range")

	// ErrInvalidFiscalYear indicates a fiscal year outside 1900-2100.
	ErrInvalidFiscalYear = errors.New("fiscal year out of range")

	// ErrInvalidConfidence indicates a confidence outside [0,1].
	ErrInvalidConfidence = errors.New("confidence out of range")

	// ErrInvalidSpan indicates span_end <= span_start.
	ErrInvalidSpan = errors.New("span end must be greater than span start")

	// ErrInvalidPage indicates a page number below 1.
	ErrInvalidPage = errors.New("page number must be >= 1")

	// ErrEmptyExtract indicates the ExtractText field is empty.
	ErrEmptyExtract = errors.New("extract text cannot be empty")

	// ErrExtractTooLong indicates the ExtractText field exceeds the bound.
	ErrExtractTooLong = errors.New("extract text exceeds maximum length")

	// ErrEmptyOrgID indicates the OrgID field is empty.
	ErrEmptyOrgID = errors.New("org id cannot be empty")

	// ErrEmptyDocID indicates the DocID field is empty.
	ErrEmptyDocID = errors.New("doc id cannot be empty")

	// ErrEmptyEvidenceType indicates the EvidenceType tag is empty.
	ErrEmptyEvidenceType = errors.New("evidence type cannot be empty")

	// ErrInvalidTimestamp indicates a missing or future extraction timestamp.
	ErrInvalidTimestamp = errors.New("extraction timestamp missing or in the future")
)
