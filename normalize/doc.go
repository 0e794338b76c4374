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


// Package normalize derives the silver evidence tier from bronze.
//
// The pass is a pure deterministic function of the bronze tree and a pinned
// "as of" reference: group by (content hash, org, fiscal year), keep the
// highest-confidence candidate (most recent extraction breaks ties), apply
// the freshness aging table, and replace the silver partition tree
// wholesale. Rerunning over identical input reproduces identical output
// byte for byte.
package normalize
