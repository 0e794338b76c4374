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


// Package ai defines the narrow contract to the external model services.
//
// The pipeline treats embedding generation and text generation as opaque,
// swappable services: two call types, embed(texts) -> vectors and
// generate(prompt) -> text, always invoked through the deterministic call
// cache in package replay. Subpackage openai implements the contract for
// OpenAI-compatible HTTP services; subpackage mock provides deterministic
// in-process test doubles.
package ai
