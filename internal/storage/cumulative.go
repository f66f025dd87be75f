package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/LJTian/FeedbackHub/internal/collector"
)

// MergeResult 一次追加的统计
type MergeResult struct {
	New      int
	Skipped  int
	Appended []collector.Feedback
}

// ReadIDs 读取累计文件中已存在的 id；文件不存在时返回空集合。
// 无法解析或缺少 id 的行直接跳过。
func ReadIDs(path string) (map[string]struct{}, error) {
	seen := make(map[string]struct{})

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return seen, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	defer file.Close()

	err = eachLine(file, func(line []byte) {
		var rec struct {
			ID *string `json:"id"`
		}
		if json.Unmarshal(line, &rec) != nil || rec.ID == nil {
			return
		}
		seen[*rec.ID] = struct{}{}
	})
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return seen, nil
}

// Merge 只追加 id 未出现过的记录；文件只增长，从不重写。
// 同一批次内的重复 id 只写入第一条。写入失败时返回零值结果。
func Merge(path string, batch []collector.Feedback) (MergeResult, error) {
	seen, err := ReadIDs(path)
	if err != nil {
		return MergeResult{}, err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return MergeResult{}, fmt.Errorf("storage: open %s for append: %w", path, err)
	}
	defer file.Close()

	// 已有文件末尾缺少换行时先补上，避免新记录粘到最后一行
	missing, err := missingTrailingNewline(file)
	if err != nil {
		return MergeResult{}, fmt.Errorf("storage: inspect %s: %w", path, err)
	}
	if missing {
		if _, err := file.Write([]byte{'\n'}); err != nil {
			return MergeResult{}, fmt.Errorf("storage: append %s: %w", path, err)
		}
	}

	res, err := writeNew(file, seen, batch)
	if err != nil {
		return MergeResult{}, fmt.Errorf("storage: append %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return MergeResult{}, fmt.Errorf("storage: close %s: %w", path, err)
	}
	return res, nil
}

// writeNew 写出 seen 中没有的记录并更新 seen；任何写入错误都返回零值结果
func writeNew(dst io.Writer, seen map[string]struct{}, batch []collector.Feedback) (MergeResult, error) {
	var res MergeResult
	w := bufio.NewWriter(dst)
	for _, item := range batch {
		if _, ok := seen[item.ID]; ok {
			res.Skipped++
			continue
		}
		line, err := collector.EncodeLine(item)
		if err != nil {
			return MergeResult{}, fmt.Errorf("encode %s: %w", item.ID, err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return MergeResult{}, err
		}

		seen[item.ID] = struct{}{}
		res.New++
		res.Appended = append(res.Appended, item)
	}
	if err := w.Flush(); err != nil {
		return MergeResult{}, err
	}
	return res, nil
}

func missingTrailingNewline(file *os.File) (bool, error) {
	info, err := file.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := file.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

// CountLines 统计文件行数（含格式错误的行），文件不存在时为 0
func CountLines(path string) (int, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: open %s: %w", path, err)
	}
	defer file.Close()

	n := 0
	r := bufio.NewReader(file)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			n++
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("storage: read %s: %w", path, err)
		}
	}
}

// eachLine 对每个非空行调用 fn，不限制行长度
func eachLine(r io.Reader, fn func(line []byte)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			fn(trimmed)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
