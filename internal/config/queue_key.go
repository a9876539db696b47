package config

type QueueKeyStruct struct {
	GradingRequestsQueue string
}

var QueueKey = &QueueKeyStruct{
	GradingRequestsQueue: "grading_requests_queue",
}
