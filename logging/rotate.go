package logging

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// dailyFile writes to <dir>/<name>-YYYY-MM-DD.log, switching files at the day
// boundary. Size rotation within a day is handled by lumberjack, which also
// creates the directory on first write.
type dailyFile struct {
	mu sync.Mutex

	dir       string
	name      string
	maxSizeMB int
	keep      retention
	compress  bool
	now       func() time.Time
	// loc decides where the day boundary falls; it matches record timestamps.
	loc *time.Location

	day     string
	current *lumberjack.Logger
}

func newDailyFile(dir, name string, maxSizeMB int, keep retention, compress bool, now func() time.Time, loc *time.Location) *dailyFile {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &dailyFile{
		dir:       dir,
		name:      name,
		maxSizeMB: maxSizeMB,
		keep:      keep,
		compress:  compress,
		now:       now,
		loc:       loc,
	}
}

func (d *dailyFile) filename(day string) string {
	return filepath.Join(d.dir, d.name+"-"+day+".log")
}

// open makes sure today's file exists and is writable.
func (d *dailyFile) open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollIfNeeded()
	_, err := d.current.Write(nil)
	return err
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollIfNeeded()
	return d.current.Write(p)
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return nil
	}
	err := d.current.Close()
	d.current = nil
	return err
}

// rollIfNeeded must be called with mu held.
func (d *dailyFile) rollIfNeeded() {
	now := d.now()
	day := now.In(d.loc).Format(dateLayout)
	if d.current != nil && day == d.day {
		return
	}
	if d.current != nil {
		_ = d.current.Close()
	}

	d.day = day
	d.current = &lumberjack.Logger{
		Filename:   d.filename(day),
		MaxSize:    d.maxSizeMB,
		MaxAge:     d.keep.days,
		MaxBackups: d.keep.files,
		LocalTime:  true,
		Compress:   d.compress,
	}
	go d.sweep(now, d.current.Filename)
}

// sweep applies retention across days: lumberjack only prunes backups of the
// file it is currently writing.
func (d *dailyFile) sweep(now time.Time, active string) int {
	matches, err := filepath.Glob(filepath.Join(d.dir, d.name+"-*.log*"))
	if err != nil {
		return 0
	}

	type logFile struct {
		path    string
		modTime time.Time
	}
	files := make([]logFile, 0, len(matches))
	for _, m := range matches {
		if m == active {
			continue
		}
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, logFile{path: m, modTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	maxAge := time.Duration(d.keep.days) * 24 * time.Hour
	removed := 0
	for i, f := range files {
		expired := d.keep.days > 0 && now.Sub(f.modTime) > maxAge
		// The active file counts towards the limit.
		overflow := d.keep.files > 0 && i+1 >= d.keep.files
		if expired || overflow {
			if os.Remove(f.path) == nil {
				removed++
			}
		}
	}
	return removed
}
