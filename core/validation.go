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


package core

import "fmt"

// ValidateGrantRecord validates a GrantRecord according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - AwardAmount must not be negative
//
// NOT validated:
//   - Title/Abstract (empty text is handled by the normalizer, which flags
//     the record unclassifiable rather than rejecting it)
//   - Metadata (passed through opaque)
func ValidateGrantRecord(record *GrantRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidGrantRecord)
	}

	if record.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidGrantRecord, ErrEmptyGrantID)
	}

	if record.AwardAmount < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidGrantRecord, ErrNegativeAwardAmount)
	}

	return nil
}

// ValidateBatch validates every record in a batch and checks identifier
// uniqueness across it.
func ValidateBatch(records []*GrantRecord) error {
	seen := make(map[string]struct{}, len(records))
	for i, record := range records {
		if err := ValidateGrantRecord(record); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, ok := seen[record.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateGrantID, record.ID)
		}
		seen[record.ID] = struct{}{}
	}
	return nil
}
