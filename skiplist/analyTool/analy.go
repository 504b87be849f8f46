package analyTool

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/Hakuto4838/skipset/skiplist"
)

// StepMap 記錄每個 key 的搜尋步數
type StepMap[T comparable] map[T]int

// FindStep 計算找到指定 key 的總步數和各層步數，less 必須與 sl 建構時相同。
// 向右走一步算一步，向下一層也算一步。
func FindStep[T any](sl skiplist.Analyable[T], key T, less func(a, b T) bool) (step int, level []int) {
	cur := sl.GetHead()
	if cur == nil {
		return 0, []int{}
	}

	_, height := sl.GetMaxStats()
	stepsPerLevel := make([]int, height)
	totalSteps := 0

	// 從最高層開始搜尋
	for h := height - 1; h >= 0; h-- {
		levelSteps := 0

		// 在當前層級水平移動
		next := cur.GetNextAt(h)
		for next != nil && less(next.GetKey(), key) {
			cur = next
			next = cur.GetNextAt(h)
			levelSteps++
		}

		// 找到目標 key，加上最後一步
		if next != nil && !less(key, next.GetKey()) {
			levelSteps++
			stepsPerLevel[h] = levelSteps
			totalSteps += levelSteps
			return totalSteps, stepsPerLevel
		}

		stepsPerLevel[h] = levelSteps
		totalSteps += levelSteps
		if h > 0 {
			totalSteps++ // 向下移動
		}
	}

	return totalSteps, stepsPerLevel
}

// AnalyzeStep 根據 map 提供的 key 出現機率計算平均搜尋步數。
// 不在結構中的 key 不列入計算。
func AnalyzeStep[T comparable](sl skiplist.Analyable[T], keys map[T]float64, less func(a, b T) bool) (float64, StepMap[T]) {
	if len(keys) == 0 {
		return 0.0, nil
	}

	step := StepMap[T]{}
	var totalExpectedSteps float64
	var totalProbability float64

	for node := firstNode(sl); node != nil; node = node.GetNextAt(0) {
		key := node.GetKey()
		p, ok := keys[key]
		if !ok {
			continue
		}
		s, _ := FindStep(sl, key, less)
		step[key] = s
		totalExpectedSteps += float64(s) * p
		totalProbability += p
	}

	if totalProbability > 0 {
		return totalExpectedSteps / totalProbability, step
	}
	return 0.0, step
}

func firstNode[T any](sl skiplist.Analyable[T]) skiplist.Nodelike[T] {
	head := sl.GetHead()
	if head == nil {
		return nil
	}
	return head.GetNextAt(0)
}

// PrintNodes 依 level 0 順序輸出每個節點的 key 與高度
func PrintNodes[T any](w io.Writer, sl skiplist.Analyable[T]) error {
	for node := firstNode(sl); node != nil; node = node.GetNextAt(0) {
		if _, err := fmt.Fprintf(w, "Node { key: %v, height: %d }\n", node.GetKey(), node.GetHeight()); err != nil {
			return err
		}
	}
	return nil
}

// PrintSkipList 打印 skip list 的結構，最多 maxLevel 層、maxNodes 個節點
func PrintSkipList[T any](w io.Writer, sl skiplist.Analyable[T], maxLevel, maxNodes int) {
	_, height := sl.GetMaxStats()
	maxLevel = min(maxLevel, height)
	if maxLevel <= 0 {
		return
	}

	output := make([]string, maxLevel)
	for i := range output {
		output[i] = fmt.Sprintf("level %2d : head ->", i)
	}

	node := firstNode(sl)
	if node == nil {
		fmt.Fprintln(w, "Skip list 為空")
		return
	}

	for count := 0; node != nil && count < maxNodes; count++ {
		key := fmt.Sprintf("%v", node.GetKey())
		for i := range output {
			if i < node.GetHeight() {
				output[i] += fmt.Sprintf(" %3s ->", key)
			} else {
				output[i] += fmt.Sprintf(" %3s ->", "")
			}
		}
		node = node.GetNextAt(0)
	}

	for i := maxLevel - 1; i >= 0; i-- {
		fmt.Fprintln(w, output[i])
	}
}

// PrintSkipListToCSV 將 skip list 的結構輸出到 CSV，每層一列
func PrintSkipListToCSV[T any](sl skiplist.Analyable[T], maxLevel, maxNodes int, writer *csv.Writer) error {
	_, height := sl.GetMaxStats()
	maxLevel = max(0, min(maxLevel, height))

	rows := make([][]string, maxLevel)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("level %d", i)}
	}
	count := 0
	for node := firstNode(sl); node != nil && count < maxNodes; node = node.GetNextAt(0) {
		for i := range rows {
			if i < node.GetHeight() {
				rows[i] = append(rows[i], fmt.Sprintf("%v", node.GetKey()))
			} else {
				rows[i] = append(rows[i], "")
			}
		}
		count++
	}

	for i := maxLevel - 1; i >= 0; i-- {
		if err := writer.Write(rows[i]); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}
	writer.Flush()
	return writer.Error()
}

// CheckStruct 檢查 skip list 的結構是否正確：
// 每層遞增、不重複、高度合法、高層連結與 level 0 一致、size 與節點數相符。
func CheckStruct[T any](sl skiplist.Analyable[T], less func(a, b T) bool) error {
	size, height := sl.GetMaxStats()
	head := sl.GetHead()
	if head == nil {
		return errors.New("nil head")
	}
	maxHeight := head.GetHeight()
	if height < 1 || height > maxHeight {
		return errors.Errorf("height %d out of range [1, %d]", height, maxHeight)
	}

	// last[i] 是目前為止第 i 層最後一個節點
	last := make([]skiplist.Nodelike[T], maxHeight)
	for i := range last {
		last[i] = head
	}

	count := 0
	var prev skiplist.Nodelike[T]
	for node := head.GetNextAt(0); node != nil; node = node.GetNextAt(0) {
		nodeHeight := node.GetHeight()
		if nodeHeight < 1 || nodeHeight > maxHeight {
			return errors.Errorf("node %v: height %d out of range [1, %d]", node.GetKey(), nodeHeight, maxHeight)
		}
		if nodeHeight > height {
			return errors.Errorf("node %v: height %d above list height %d", node.GetKey(), nodeHeight, height)
		}
		if prev != nil && !less(prev.GetKey(), node.GetKey()) {
			return errors.Errorf("level 0: %v is not less than %v", prev.GetKey(), node.GetKey())
		}
		for i := 1; i < nodeHeight; i++ {
			if next := last[i].GetNextAt(i); next != node {
				return errors.Errorf("level %d: node %v is not linked after its predecessor", i, node.GetKey())
			}
			last[i] = node
		}
		prev = node
		count++
	}

	// 每一層的最後一個節點之後不應還有節點
	for i := 1; i < maxHeight; i++ {
		if next := last[i].GetNextAt(i); next != nil {
			return errors.Errorf("level %d: dangling link to %v", i, next.GetKey())
		}
	}

	if count != size {
		return errors.Errorf("size %d does not match level 0 node count %d", size, count)
	}
	return nil
}

// CountLevel 計算每層的節點數量
func CountLevel[T any](sl skiplist.Analyable[T]) []int {
	_, height := sl.GetMaxStats()
	levelCounts := make([]int, height)

	for node := firstNode(sl); node != nil; node = node.GetNextAt(0) {
		// 該節點存在於 level 0 到 height-1 的所有層
		for i := 0; i < node.GetHeight() && i < len(levelCounts); i++ {
			levelCounts[i]++
		}
	}
	return levelCounts
}

// PrintLevelCounts 以表格輸出每層節點數與相對於下一層的比例
func PrintLevelCounts[T any](w io.Writer, sl skiplist.Analyable[T]) {
	counts := CountLevel(sl)
	size, height := sl.GetMaxStats()

	rows := make([][]string, 0, len(counts))
	for i := len(counts) - 1; i >= 0; i-- {
		ratio := "-"
		if i > 0 && counts[i-1] > 0 {
			ratio = strconv.FormatFloat(float64(counts[i])/float64(counts[i-1]), 'f', 3, 64)
		}
		rows = append(rows, []string{strconv.Itoa(i), strconv.Itoa(counts[i]), ratio})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Level", "Nodes", "Ratio"})
	table.SetFooter([]string{"", fmt.Sprintf("size %d", size), fmt.Sprintf("height %d", height)})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

// SortedSteps 依 less 排序回傳 (key, step)
func (mp StepMap[T]) SortedSteps(less func(a, b T) bool) ([]T, []int) {
	keys := make([]T, 0, len(mp))
	for k := range mp {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return less(keys[i], keys[j])
	})
	steps := make([]int, len(keys))
	for i, k := range keys {
		steps[i] = mp[k]
	}
	return keys, steps
}

func (mp StepMap[T]) Print(w io.Writer, less func(a, b T) bool) {
	keys, steps := mp.SortedSteps(less)
	for _, k := range keys {
		fmt.Fprintf(w, "%3v  ", k)
	}
	fmt.Fprintln(w)
	for _, s := range steps {
		fmt.Fprintf(w, "%3d  ", s)
	}
	fmt.Fprintln(w)
}

func (mp StepMap[T]) PrintToCSV(writer *csv.Writer, less func(a, b T) bool) error {
	_, steps := mp.SortedSteps(less)
	row := make([]string, len(steps)+1)
	row[0] = "steps"
	for i, s := range steps {
		row[i+1] = strconv.Itoa(s)
	}
	if err := writer.Write(row); err != nil {
		return errors.Wrap(err, "write csv row")
	}
	writer.Flush()
	return writer.Error()
}
