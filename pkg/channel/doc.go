// Package channel maps symbolic output channel tokens ("1", "3/4") to the
// external output buses of a Live set.
//
// Mono tokens are small positive integers and map to AudioOut/External/M<n-1>.
// Stereo tokens contain a "/" separator and map to AudioOut/External/S<i>, where
// i counts stereo pairs from 1 in ascending token order.
package channel
