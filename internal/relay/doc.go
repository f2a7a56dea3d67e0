// Package relay implements the submission admission pipeline: the ordered
// sequence of checks and state transitions that decides whether an inbound
// contact-form message is rejected, routed into the activation flow, or
// forwarded as a live email.
//
// The pipeline short-circuits on the first failing check and produces an
// Outcome; unexpected infrastructure failures are returned as errors and
// never leak provider detail to the caller.
package relay
