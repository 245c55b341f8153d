// Package assign labels participants with roles using a uniform shuffle.
//
// The algorithm:
//  1. Build a pool from whole copies of the role names, in order, until it
//     is at least as long as the participant list.
//  2. Truncate the pool to the participant count.
//  3. Fisher–Yates shuffle the pool.
//  4. Zip the pool positionally onto the participants.
//
// When there are more participants than roles every role is used either
// floor(p/r) or ceil(p/r) times. Inputs are never modified.
package assign
