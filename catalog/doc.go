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

// Package catalog records pipeline lineage in a BadgerDB store: which
// ingestion batches were written, which normalizer runs produced the
// current silver tree, and which index builds exist per document.
//
// The catalog is advisory metadata. The partition trees and index
// directories remain the source of truth; losing the catalog loses
// run history, not data.
package catalog
