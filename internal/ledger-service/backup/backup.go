// Package backup grava snapshots CSV do ledger em uma agenda cron.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Source fornece o CSV atual (service.Export)
type Source func() string

// Scheduler agenda o backup periódico
type Scheduler struct {
	Cron   *cron.Cron
	Dir    string
	Export Source
	Log    *zap.Logger

	now func() time.Time

	OnBackup func(err error) // métricas
}

// New cria o scheduler; schedule segue o formato cron padrão de 5 campos ("0 3 * * *")
func New(schedule, dir string, export Source, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		Cron:   cron.New(),
		Dir:    dir,
		Export: export,
		Log:    log,
		now:    time.Now,
	}
	if _, err := s.Cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("register backup %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("backup scheduler started", zap.String("dir", s.Dir))
}

// Stop espera o job em execução terminar
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("backup scheduler stopped")
}

// RunNow executa o backup imediatamente e retorna o caminho gravado
func (s *Scheduler) RunNow() (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	path := filepath.Join(s.Dir, "apostas_"+s.now().Format("2006-01-02")+".csv")
	if err := os.WriteFile(path, []byte(s.Export()), 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}

func (s *Scheduler) run() {
	path, err := s.RunNow()
	if s.OnBackup != nil {
		s.OnBackup(err)
	}
	if err != nil {
		s.Log.Error("backup failed", zap.Error(err))
		return
	}
	s.Log.Info("backup written", zap.String("path", path))
}
