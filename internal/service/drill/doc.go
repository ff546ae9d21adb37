// Package drill implements the drill session engine: drawing words without
// repetition, building answer options, judging answers, tracking words
// answered wrong and persisting session progress.
//
// Every store mutation of a logical operation runs in one transaction, so a
// crash never leaves the used flags, error flags and counters out of step.
package drill
