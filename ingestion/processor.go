// Copyright 2025 Poiesic Systems
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


package ingestion

import (
	"context"

	"github.com/poiesic/shadowsync/ai"
	"github.com/poiesic/shadowsync/core"
)

// processor applies one extraction to one store.
type processor interface {
	// process writes the extraction for text, notes what it added on the
	// receipt and returns the event that reports the change.
	process(ctx context.Context, text string, extraction *ai.Extraction, receipt *Receipt) (core.EventType, string, error)
}
