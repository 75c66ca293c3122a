/*
 *     Copyright 2024 The Dragonfly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RandBackoff returns a jittered exponential backoff of the attempt, bounded by maxBackoff.
func RandBackoff(initBackoff, maxBackoff time.Duration, multiplier float64, attempt int) time.Duration {
	backoff := float64(initBackoff) * math.Pow(multiplier, float64(attempt))
	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}

	return time.Duration(rand.Float64() * backoff)
}

// Run calls f up to maxAttempts times until it succeeds or asks to stop, waiting
// a backoff between attempts. The last result is returned.
func Run[T any](ctx context.Context,
	initBackoff time.Duration,
	maxBackoff time.Duration,
	maxAttempts int,
	f func() (data T, cancel bool, err error)) (T, bool, error) {
	var (
		res    T
		cancel bool
		cause  error
	)
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			timer := time.NewTimer(RandBackoff(initBackoff, maxBackoff, 2.0, i))
			select {
			case <-ctx.Done():
				timer.Stop()
				return res, cancel, ctx.Err()
			case <-timer.C:
			}
		}

		res, cancel, cause = f()
		if cause == nil || cancel {
			break
		}
	}

	return res, cancel, cause
}
