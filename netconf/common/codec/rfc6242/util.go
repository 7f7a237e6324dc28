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

package rfc6242

// SetChunkedFraming switches each of objects (*Decoder and/or *Encoder)
// into base:1.1 chunked framing. It is typically called once on both
// halves of a session's codec immediately after a hello exchange
// negotiates base:1.1.
func SetChunkedFraming(objects ...interface{}) {
	for _, o := range objects {
		switch v := o.(type) {
		case *Decoder:
			v.SetChunkedFraming()
		case *Encoder:
			v.SetChunkedFraming()
		}
	}
}
