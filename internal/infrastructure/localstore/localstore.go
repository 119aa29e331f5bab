// Package localstore はバックアップ履歴などの小さなローカル状態を
// 単一 JSON ファイルで永続化する。プロセス再起動をまたいで残ることだけが目的で、
// 外部ストアの可用性には依存しない。
package localstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const lastBackupKey = "lastBackup"

// Store は key-value 状態を 1 ファイルで保持する。書き込みは一時ファイルへの
// 書き出しと rename で行い、途中失敗でも既存ファイルを壊さない。
type Store struct {
	mu   sync.Mutex
	path string
}

// New は保存先パスを束縛したストアを生成する。ファイルは初回 Set 時に作られる。
func New(path string) *Store {
	return &Store{path: path}
}

// Get はキーに対応する値を返す。ファイル未作成は「値なし」として扱う。
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

// Set はキーの値を差し替えて全体を書き戻す。
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// BackupState は最終バックアップ日時の読み書きに特化したアダプタ。
type BackupState struct {
	store *Store
}

// NewBackupState は保存先パスを束縛した BackupState を生成する。
func NewBackupState(path string) *BackupState {
	return &BackupState{store: New(path)}
}

// SaveLastBackup は実行時刻を RFC 3339 形式で記録する。
func (b *BackupState) SaveLastBackup(at time.Time) error {
	return b.store.Set(lastBackupKey, at.UTC().Format(time.RFC3339Nano))
}

// LastBackup は記録済みの最終バックアップ日時を返す。未記録なら false。
func (b *BackupState) LastBackup() (time.Time, bool, error) {
	value, ok, err := b.store.Get(lastBackupKey)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	at, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}
