package archive

import (
	"time"

	"github.com/hpcfair/slurmplot/pkg/core"
)

// jobRecordDO is the persisted shape of one raw job record. Nullable columns
// keep the absent-versus-zero distinction across the round trip.
type jobRecordDO struct {
	ID uint `gorm:"primarykey"`

	JobID  string     `gorm:"size:64;uniqueIndex:idx_job_submit"`
	Submit *time.Time `gorm:"uniqueIndex:idx_job_submit"`

	Account   string `gorm:"size:128;index"`
	Partition string `gorm:"size:128;index"`
	User      string `gorm:"size:128;index"`
	State     string `gorm:"size:32;index"`

	Start *time.Time
	End   *time.Time

	ReqCPUs     *float64
	AllocCPUs   *float64
	ReqMemRaw   *float64
	ReqMemUnit  string `gorm:"size:8"`
	MaxRSSRaw   *float64
	MaxRSSUnit  string `gorm:"size:8"`
	AllocGPUs   *float64
	CPUTimeRaw  *float64
}

func (jobRecordDO) TableName() string {
	return "job_records"
}

func toDO(r *core.JobRecord) *jobRecordDO {
	do := &jobRecordDO{
		JobID:     r.JobID,
		Account:   r.Account,
		Partition: r.Partition,
		User:      r.User,
		State:     r.State,
	}
	do.Submit = timePtr(r.Submit)
	do.Start = timePtr(r.Start)
	do.End = timePtr(r.End)
	do.ReqCPUs = floatPtr(r.ReqCPUs)
	do.AllocCPUs = floatPtr(r.AllocCPUs)
	do.AllocGPUs = floatPtr(r.AllocGPUs)
	do.CPUTimeRaw = floatPtr(r.CPUTimeRaw)
	if r.ReqMem.Valid {
		v := r.ReqMem.Value
		do.ReqMemRaw = &v
		do.ReqMemUnit = string(r.ReqMem.Unit)
	}
	if r.MaxRSS.Valid {
		v := r.MaxRSS.Value
		do.MaxRSSRaw = &v
		do.MaxRSSUnit = string(r.MaxRSS.Unit)
	}
	return do
}

func (do *jobRecordDO) toRecord() *core.JobRecord {
	r := &core.JobRecord{
		JobID:     do.JobID,
		Account:   do.Account,
		Partition: do.Partition,
		User:      do.User,
		State:     do.State,
	}
	r.Submit = optTime(do.Submit)
	r.Start = optTime(do.Start)
	r.End = optTime(do.End)
	r.ReqCPUs = optFloat(do.ReqCPUs)
	r.AllocCPUs = optFloat(do.AllocCPUs)
	r.AllocGPUs = optFloat(do.AllocGPUs)
	r.CPUTimeRaw = optFloat(do.CPUTimeRaw)
	if do.ReqMemRaw != nil {
		r.ReqMem = core.Memory(*do.ReqMemRaw, core.MemoryUnit(do.ReqMemUnit))
	}
	if do.MaxRSSRaw != nil {
		r.MaxRSS = core.Memory(*do.MaxRSSRaw, core.MemoryUnit(do.MaxRSSUnit))
	}
	return r
}

func timePtr(t core.OptionalTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Value
	return &v
}

func floatPtr(f core.OptionalFloat) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

func optTime(p *time.Time) core.OptionalTime {
	if p == nil {
		return core.NoTime()
	}
	return core.Time(p.UTC())
}

func optFloat(p *float64) core.OptionalFloat {
	if p == nil {
		return core.NoFloat()
	}
	return core.Float(*p)
}
