package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. The scheduler keeps the post cache and the search index in
// sync with the content directory, both periodically and in response to
// filesystem changes.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
