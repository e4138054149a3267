// Package batch scores a set of scanned sheets against one template.
//
// The Driver validates the template once, then scores images on a bounded
// pool of goroutines. Each image writes only to its own slot of the result
// slice, so results come back in input order without any locking. A
// failure while decoding or scoring one image is recorded in that image's
// ScanResult and never stops the rest of the batch; an invalid template
// stops the batch before any image is read.
package batch
