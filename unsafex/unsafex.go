/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package unsafex

import "unsafe"

// BinaryToString converts []byte to string without copy.
// b MUST NOT be modified after the call.
func BinaryToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// SliceAddr returns the address of the first element of b's backing array.
// It returns 0 if b has zero capacity, since such a slice may not point into any allocation.
func SliceAddr(b []byte) uintptr {
	if cap(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// SliceOffset returns the byte offset of b's data pointer relative to base's,
// and false if b has no backing array or does not start within base[:cap(base)].
func SliceOffset(base, b []byte) (int, bool) {
	p, q := SliceAddr(base), SliceAddr(b)
	if p == 0 || q == 0 || q < p || q-p >= uintptr(cap(base)) {
		return 0, false
	}
	return int(q - p), true
}
