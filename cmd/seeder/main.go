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

// Seeder populates a pipeline root with synthetic bronze evidence for
// local development. It writes bronze records only; run the normalize
// and build-index commands afterwards.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/veridian-systems/evidentia/catalog"
	"github.com/veridian-systems/evidentia/core"
	"github.com/veridian-systems/evidentia/storage/partition"
)

var extracts = map[string][]string{
	"ghg_emissions": {
		"Scope 1 emissions decreased 12% against the restated 2020 baseline.",
		"Scope 2 market-based emissions fell following new power purchase agreements.",
		"Scope 3 category 1 estimates now cover 85% of procurement spend.",
		"Methane leakage surveys were extended to all compressor stations.",
		"The group reports emissions intensity per tonne of finished product.",
	},
	"climate_risk": {
		"Physical risk was assessed for all sites under two warming scenarios.",
		"Flood exposure at coastal plants was remodelled with updated hazard maps.",
		"Transition risk from carbon pricing is tested against three policy paths.",
		"Heat stress thresholds were added to the operational risk register.",
		"Scenario analysis now extends to the 2050 planning horizon.",
	},
	"energy_transition": {
		"Renewable electricity reached 40% of total consumption this year.",
		"Two onsite solar installations were commissioned in the second half.",
		"The capital plan allocates a third of spend to electrification projects.",
		"Gas boilers at the largest site will be replaced by heat pumps.",
	},
	"water_stewardship": {
		"Water withdrawal in stressed basins was reduced by one fifth.",
		"Closed-loop cooling was installed at the two largest facilities.",
		"All sites in water-stressed regions now have reduction targets.",
	},
	"waste_circularity": {
		"Waste diverted from landfill improved to 78% of total generated.",
		"Packaging now contains 45% post-consumer recycled content.",
		"A take-back scheme was piloted in three markets.",
	},
	"biodiversity": {
		"Biodiversity baseline surveys began at two extraction sites.",
		"No-go commitments cover all World Heritage areas.",
	},
	"supply_chain_dd": {
		"Supplier due diligence covers all tier one factories.",
		"High-risk suppliers undergo annual third-party audits.",
		"Living wage assessments were completed for key sourcing countries.",
	},
	"workforce_safety": {
		"Lost time injury frequency declined for the third consecutive year.",
		"All sites completed the revised contractor safety induction.",
	},
	"board_oversight": {
		"The sustainability committee met five times during the year.",
		"Executive remuneration is linked to emissions reduction milestones.",
	},
	"assurance": {
		"Limited assurance was obtained over scope 1 and 2 emissions data.",
		"The assurance provider was rotated after five years.",
	},
}

var (
	rootDir = flag.String("root", "./evidentia_data", "pipeline root directory")
	orgs    = flag.Int("orgs", 3, "number of synthetic organizations")
	years   = flag.Int("years", 2, "fiscal years per organization, counting back from 2023")
	seed    = flag.Int64("seed", 42, "random seed for confidences and timestamps")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// syntheticBatch builds one org-year's worth of bronze records.
func syntheticBatch(rng *rand.Rand, orgID string, year int, snapshotID string) []*core.EvidenceRecord {
	var records []*core.EvidenceRecord
	page := 1
	for _, theme := range core.ThemeCodes {
		for _, extract := range extracts[theme] {
			extracted := time.Date(year+1, time.Month(1+rng.Intn(6)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
			record := &core.EvidenceRecord{
				OrgID:               orgID,
				FiscalYear:          year,
				Theme:               theme,
				StageIndicator:      rng.Intn(5),
				DocID:               fmt.Sprintf("%s-ar-%d", orgID, year),
				PageNo:              page,
				SpanStart:           0,
				SpanEnd:             len(extract),
				ExtractText:         extract,
				Confidence:          0.5 + rng.Float64()*0.5,
				EvidenceType:        "narrative",
				ExtractionTimestamp: extracted,
				SnapshotID:          snapshotID,
			}
			record.Finalize()
			records = append(records, record)
			page += 1 + rng.Intn(3)
		}
	}
	return records
}

func main() {
	bronze, err := partition.NewBronze(*rootDir + "/bronze")
	if err != nil {
		panic(err)
	}
	defer bronze.Close()

	backend, err := catalog.OpenBackend(*rootDir+"/catalog", false)
	if err != nil {
		panic(err)
	}
	defer backend.Close()
	lineage, err := catalog.NewCatalog(backend)
	if err != nil {
		panic(err)
	}
	defer lineage.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(*seed))

	total := 0
	for o := 0; o < *orgs; o++ {
		orgID := fmt.Sprintf("org-%03d", o+1)
		for y := 0; y < *years; y++ {
			year := 2023 - y
			batchID := fmt.Sprintf("seed-%s-%d", orgID, year)
			records := syntheticBatch(rng, orgID, year, "seed-snapshot")

			if err := bronze.WriteBatch(ctx, records, batchID); err != nil {
				panic(err)
			}
			if err := lineage.RecordIngestion(ctx, &catalog.IngestionBatch{
				BatchID:    batchID,
				SnapshotID: "seed-snapshot",
				Records:    len(records),
				Partitions: len(core.ThemeCodes),
				ReceivedAt: time.Now().UTC(),
			}); err != nil {
				panic(err)
			}
			total += len(records)
		}
	}

	slog.Info("seeded bronze evidence",
		"root", *rootDir,
		"orgs", *orgs,
		"years", *years,
		"records", total)
}
