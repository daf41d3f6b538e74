package actors

import "github.com/sasha-s/go-deadlock"

var terminateChan chan struct{}
var waitGroup = &deadlock.WaitGroup{}

func SetTerminateChan(term chan struct{}) {
	terminateChan = term
}

func GetTerminateChan() chan struct{} {
	return terminateChan
}

// GetWaitGroup tracks goroutines that must finish their shutdown hooks before the engine exits.
func GetWaitGroup() *deadlock.WaitGroup {
	return waitGroup
}
