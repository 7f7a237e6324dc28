// Copyright 2018 Andrew Fort
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

// Package rfc6242 implements the two NETCONF transport framing modes
// defined by RFC 6242: the end-of-message marker used with base:1.0,
// and the length-prefixed chunked framing used with base:1.1.
package rfc6242

const (
	// tokenEOM is the base:1.0 end-of-message marker.
	tokenEOM = "]]>]]>"

	// chunkTerminator ends a sequence of chunks in base:1.1 framing.
	chunkTerminator = "\n##\n"

	// maxChunkSize is the "maximum allowed chunk-size" from RFC6242 section 4.2.
	maxChunkSize = 4294967295

	// defaultMaxMessageSize bounds how much a Decoder will accumulate while
	// looking for a marker/chunk header before giving up with
	// malformed-framing, so a peer that never sends a terminator cannot
	// force unbounded memory growth.
	defaultMaxMessageSize = 64 * 1024 * 1024
)
