package tasks

// TaskSchedulerInterface is what the application needs from the background
// worker pool.
//
//	scheduler := NewScheduler(releases, favorites, Options{Interval: time.Minute})
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
