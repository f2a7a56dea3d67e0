// Package screening implements the stateless content and address checks
// that gate the submission pipeline: disposable-email detection against a
// configured deny-list and a set of spam-content heuristics.
//
// Both checks are pure functions over their inputs. The deny-list is loaded
// once at startup and never hot-reloaded.
package screening
