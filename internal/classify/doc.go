// Package classify turns probe outcomes into verdicts and checks that a run
// accounted for every input URL.
//
// Classification policy: a status code in [200, 400) is Valid; every other
// code, including 1xx, 4xx and 5xx, is Dead. Earlier link checkers treated
// 5xx as alive or only 4xx as dead; we deliberately use the single range
// check above and nothing else.
package classify
