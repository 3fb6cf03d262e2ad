// Package job tracks asynchronous units of work.
//
// A Job moves through Pending -> Running -> Success | Failure. The code doing
// the work reports progress with SetStatus and finishes with ReportSuccess
// or ReportFailure; callers observe the job through its Ticket, which only
// exposes read access (state, status log, captured error, Done/Wait).
//
// Every job owns a background goroutine supervised by a tomb.Tomb. It fans
// status entries out to subscribers and must be torn down with Terminate
// once the job is finished:
//
//	j := job.New(api.JobTypeDynamicServiceStateChange)
//	defer j.Terminate()
//
//	j.ReportRunning("preparing to change the app service to restart")
//	if err := work(); err != nil {
//	    j.ReportFailure(err)
//	} else {
//	    j.ReportSuccess()
//	}
//	return j.Ticket()
//
// Jobs are kept in memory only.
package job
