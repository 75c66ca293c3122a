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

package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenbridge/ecoscore/inference/service"
)

// RequestID is the header carrying the id of a request.
const RequestID = "X-Request-Id"

// RequestIDs tags every request with an id, an id sent by the client is kept.
func RequestIDs() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Request = c.Request.WithContext(service.WithRequestID(c.Request.Context(), id))
		c.Header(RequestID, id)
		c.Next()
	}
}
