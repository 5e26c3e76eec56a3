// Package bitstream provides the coded bit-stream primitive of the index:
// MSB-first fixed-width field I/O and two self-delimiting universal codes.
//
// Writers and counters share the Sink interface so that an encoder and a
// cost estimator can drive the exact same emission code. A Counter records
// only lengths, which makes it suitable for the optimizer's dry runs.
//
// Bits are packed most significant first, the same order the Gorilla
// encoder uses: the first bit written is bit 7 of byte 0. The final byte is
// padded with zero bits.
package bitstream
