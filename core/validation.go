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

import (
	"fmt"
	"time"
)

// MaxExtractLen bounds the quoted extract: a 15-word window on each side of
// a match never legitimately exceeds this.
const MaxExtractLen = 2000

// ValidateEvidenceRecord validates an EvidenceRecord according to domain rules.
//
// Validation rules:
//   - OrgID and DocID must not be empty
//   - FiscalYear must be within 1900-2100
//   - Theme must be a member of the closed theme set
//   - StageIndicator must be within 0-4
//   - PageNo must be >= 1
//   - SpanEnd must be greater than SpanStart, both non-negative
//   - ExtractText must be non-empty and at most MaxExtractLen characters
//   - Confidence must be within [0,1]
//   - EvidenceType must not be empty
//   - ExtractionTimestamp must be set and not in the future
//
// NOT validated (populated by Finalize):
//   - EvidenceID (derived from the record locator)
//   - ContentHash (derived from ExtractText)
func ValidateEvidenceRecord(record *EvidenceRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrValidation)
	}

	if record.OrgID == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyOrgID)
	}

	if record.DocID == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyDocID)
	}

	if record.FiscalYear < 1900 || record.FiscalYear > 2100 {
		return fmt.Errorf("%w: %w: %d", ErrValidation, ErrInvalidFiscalYear, record.FiscalYear)
	}

	if !IsValidTheme(record.Theme) {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidTheme, record.Theme)
	}

	if record.StageIndicator < 0 || record.StageIndicator > 4 {
		return fmt.Errorf("%w: %w: %d", ErrValidation, ErrInvalidStage, record.StageIndicator)
	}

	if record.PageNo < 1 {
		return fmt.Errorf("%w: %w: %d", ErrValidation, ErrInvalidPage, record.PageNo)
	}

	if record.SpanStart < 0 || record.SpanEnd <= record.SpanStart {
		return fmt.Errorf("%w: %w: [%d,%d)", ErrValidation, ErrInvalidSpan, record.SpanStart, record.SpanEnd)
	}

	if record.ExtractText == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyExtract)
	}

	if len(record.ExtractText) > MaxExtractLen {
		return fmt.Errorf("%w: %w: %d chars", ErrValidation, ErrExtractTooLong, len(record.ExtractText))
	}

	if record.Confidence < 0 || record.Confidence > 1 {
		return fmt.Errorf("%w: %w: %f", ErrValidation, ErrInvalidConfidence, record.Confidence)
	}

	if record.EvidenceType == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyEvidenceType)
	}

	if !IsValidTimestamp(record.ExtractionTimestamp) {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks that a timestamp is set and not in the future.
func IsValidTimestamp(ts time.Time) bool {
	return !ts.IsZero() && !ts.After(time.Now())
}
