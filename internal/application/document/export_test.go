package document

import "time"

// SetNow overrides the service clock in tests.
func (s *PublishService) SetNow(f func() time.Time) { s.now = f }
