package sweep

import (
	"context"
	"fmt"
)

const crmStatusJobName = "crm_status"

type statusPuller interface {
	PullStatuses(ctx context.Context) error
}

// CRMStatusJob pulls current CRM statuses back into the local status log.
type CRMStatusJob struct {
	puller statusPuller
}

// NewCRMStatusJob builds the job.
func NewCRMStatusJob(puller statusPuller) (*CRMStatusJob, error) {
	if puller == nil {
		return nil, fmt.Errorf("status puller required")
	}
	return &CRMStatusJob{puller: puller}, nil
}

func (j *CRMStatusJob) Name() string { return crmStatusJobName }

func (j *CRMStatusJob) Run(ctx context.Context) error {
	return j.puller.PullStatuses(ctx)
}
