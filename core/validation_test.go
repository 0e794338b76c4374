package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validRecord() *EvidenceRecord {
	r := &EvidenceRecord{
		OrgID:               "acme",
		FiscalYear:          2023,
		Theme:               "ghg_emissions",
		StageIndicator:      2,
		DocID:               "acme-ar-2023",
		PageNo:              14,
		SpanStart:           100,
		SpanEnd:             180,
		ExtractText:         "… we reduced scope 1 emissions by 12% against the 2020 baseline …",
		Confidence:          0.85,
		EvidenceType:        "quantitative",
		ExtractionTimestamp: time.Now().UTC().Add(-time.Hour),
		SnapshotID:          "snap-2024-03",
		IngestionID:         "batch-001",
	}
	r.Finalize()
	return r
}

func TestValidateEvidenceRecord_Valid(t *testing.T) {
	if err := ValidateEvidenceRecord(validRecord()); err != nil {
		t.Fatalf("ValidateEvidenceRecord() on valid record: %v", err)
	}
}

func TestValidateEvidenceRecord_Nil(t *testing.T) {
	err := ValidateEvidenceRecord(nil)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("want ErrValidation, got %v", err)
	}
}

func TestValidateEvidenceRecord_Violations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EvidenceRecord)
		wantErr error
	}{
		{
			name:    "empty org id",
			mutate:  func(r *EvidenceRecord) { r.OrgID = "" },
			wantErr: ErrEmptyOrgID,
		},
		{
			name:    "empty doc id",
			mutate:  func(r *EvidenceRecord) { r.DocID = "" },
			wantErr: ErrEmptyDocID,
		},
		{
			name:    "fiscal year too early",
			mutate:  func(r *EvidenceRecord) { r.FiscalYear = 1899 },
			wantErr: ErrInvalidFiscalYear,
		},
		{
			name:    "fiscal year too late",
			mutate:  func(r *EvidenceRecord) { r.FiscalYear = 2101 },
			wantErr: ErrInvalidFiscalYear,
		},
		{
			name:    "unknown theme",
			mutate:  func(r *EvidenceRecord) { r.Theme = "synergy" },
			wantErr: ErrInvalidTheme,
		},
		{
			name:    "stage below range",
			mutate:  func(r *EvidenceRecord) { r.StageIndicator = -1 },
			wantErr: ErrInvalidStage,
		},
		{
			name:    "stage above range",
			mutate:  func(r *EvidenceRecord) { r.StageIndicator = 5 },
			wantErr: ErrInvalidStage,
		},
		{
			name:    "page zero",
			mutate:  func(r *EvidenceRecord) { r.PageNo = 0 },
			wantErr: ErrInvalidPage,
		},
		{
			name:    "inverted span",
			mutate:  func(r *EvidenceRecord) { r.SpanStart, r.SpanEnd = 80, 80 },
			wantErr: ErrInvalidSpan,
		},
		{
			name:    "negative span start",
			mutate:  func(r *EvidenceRecord) { r.SpanStart = -1 },
			wantErr: ErrInvalidSpan,
		},
		{
			name:    "empty extract",
			mutate:  func(r *EvidenceRecord) { r.ExtractText = "" },
			wantErr: ErrEmptyExtract,
		},
		{
			name:    "extract too long",
			mutate:  func(r *EvidenceRecord) { r.ExtractText = strings.Repeat("a", MaxExtractLen+1) },
			wantErr: ErrExtractTooLong,
		},
		{
			name:    "confidence below range",
			mutate:  func(r *EvidenceRecord) { r.Confidence = -0.01 },
			wantErr: ErrInvalidConfidence,
		},
		{
			name:    "confidence above range",
			mutate:  func(r *EvidenceRecord) { r.Confidence = 1.01 },
			wantErr: ErrInvalidConfidence,
		},
		{
			name:    "empty evidence type",
			mutate:  func(r *EvidenceRecord) { r.EvidenceType = "" },
			wantErr: ErrEmptyEvidenceType,
		},
		{
			name:    "zero timestamp",
			mutate:  func(r *EvidenceRecord) { r.ExtractionTimestamp = time.Time{} },
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "future timestamp",
			mutate:  func(r *EvidenceRecord) { r.ExtractionTimestamp = time.Now().Add(time.Hour) },
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validRecord()
			tt.mutate(record)

			err := ValidateEvidenceRecord(record)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("want wrapped ErrValidation, got %v", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("want %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestIsValidTheme(t *testing.T) {
	for _, code := range ThemeCodes {
		if !IsValidTheme(code) {
			t.Errorf("IsValidTheme(%q) = false, want true", code)
		}
	}
	if IsValidTheme("") || IsValidTheme("GHG_EMISSIONS") {
		t.Errorf("IsValidTheme accepted a non-member")
	}
}
