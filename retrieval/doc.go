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

// Package retrieval ranks index chunks against a query with a hybrid of
// lexical and semantic relevance.
//
// Lexical scores come from BM25 (k1=1.2, b=0.75), normalized to [0,1] by
// dividing by the maximum score in the result set. Semantic scores are
// cosine similarity against the stored chunk vectors, shifted from
// [-1,1] to [0,1]. The fused score is a weighted sum controlled by
// alpha, the lexical-weight fraction.
//
// Rankings are bit-for-bit reproducible: given identical index artifacts
// and cache contents, the same query always returns the same list, with
// score ties broken by ascending chunk id.
package retrieval
