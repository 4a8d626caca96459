package scheduling

import (
	"fmt"
	"sort"
	"sync"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
	"github.com/robfig/cron/v3"
)

//DefaultCrontab fires jobs every 5 minutes
const DefaultCrontab = "*/5 * * * *"

//Cronjob throws events on schedule
type Cronjob struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Crontab     string   `json:"crontab"`
	Throws      []string `json:"throws"`
	IsEnabled   bool     `json:"isEnabled"`
}

//CronScheduler is used for scheduling Cronjob executions
type CronScheduler struct {
	mutex *sync.RWMutex

	cronInstance *cron.Cron
	//cronjob name: EntryID
	scheduledEntries map[string]cron.EntryID
	cronjobs         map[string]*Cronjob

	executeFunc func(cronjob *Cronjob)
}

//NewCronScheduler return CronScheduler but not started!!
//for starting scheduling run CronScheduler.Start()
func NewCronScheduler() *CronScheduler {
	return &CronScheduler{
		mutex: &sync.RWMutex{},
		cronInstance: cron.New(cron.WithParser(cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		))),
		scheduledEntries: map[string]cron.EntryID{},
		cronjobs:         map[string]*Cronjob{},
	}
}

//Start initialize executeFunc and start cron scheduler job
func (s *CronScheduler) Start(executeFunc func(cronjob *Cronjob)) {
	s.executeFunc = executeFunc
	s.cronInstance.Start()
}

//Schedule adds the cronjob to cron scheduler with its crontab (standard cron format e.g. */5 * * * *)
//disabled cronjobs are kept but not scheduled
func (s *CronScheduler) Schedule(cronjob *Cronjob) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entryID, exist := s.scheduledEntries[cronjob.Name]; exist {
		entry := s.cronInstance.Entry(entryID)
		return fmt.Errorf("Cronjob [%s] is already scheduled (next run: %s | last run: %s)", cronjob.Name, entry.Next.Format(timestamp.Layout), entry.Prev.Format(timestamp.Layout))
	}

	crontab := cronjob.Crontab
	if crontab == "" {
		crontab = DefaultCrontab
	}

	if cronjob.IsEnabled {
		entryID, err := s.cronInstance.AddFunc(crontab, func() { s.execute(cronjob) })
		if err != nil {
			return fmt.Errorf("Error scheduling cronjob [%s] with crontab [%s]: %v", cronjob.Name, crontab, err)
		}
		s.scheduledEntries[cronjob.Name] = entryID
	}

	s.cronjobs[cronjob.Name] = cronjob
	return nil
}

//Remove deletes the cronjob from cron scheduler
func (s *CronScheduler) Remove(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entryID, exist := s.scheduledEntries[name]; exist {
		s.cronInstance.Remove(entryID)
		delete(s.scheduledEntries, name)
	}
	delete(s.cronjobs, name)
}

//Get returns the cronjob by name
func (s *CronScheduler) Get(name string) (*Cronjob, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	cronjob, ok := s.cronjobs[name]
	return cronjob, ok
}

//Cronjobs returns all cronjobs sorted by name
func (s *CronScheduler) Cronjobs() []*Cronjob {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]*Cronjob, 0, len(s.cronjobs))
	for _, cronjob := range s.cronjobs {
		result = append(result, cronjob)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func (s *CronScheduler) execute(cronjob *Cronjob) {
	if s.executeFunc != nil {
		s.executeFunc(cronjob)
	}
}

func (s *CronScheduler) Close() error {
	<-s.cronInstance.Stop().Done()

	return nil
}
