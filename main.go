package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/leengari/mini-optimizer/internal/catalog"
	"github.com/leengari/mini-optimizer/internal/config"
	"github.com/leengari/mini-optimizer/internal/domain/data"
	"github.com/leengari/mini-optimizer/internal/domain/transaction"
	"github.com/leengari/mini-optimizer/internal/logging"
	"github.com/leengari/mini-optimizer/internal/plan"
	"github.com/leengari/mini-optimizer/internal/planner"
	"github.com/leengari/mini-optimizer/internal/stats"
)

// Demo: builds a small in-memory catalog, declares a three-way join with a
// pushed-down filter, and prints the plan the optimizer chooses.
func main() {
	cfg := config.Default()

	_, closeLogger := logging.SetupLogger(cfg.SeqEndpoint)
	defer closeLogger()

	cat := demoCatalog()

	mgr := stats.NewManager(cat, cfg.HistogramBuckets)
	builder := planner.NewQueryPlanBuilder(cat, mgr, cfg).
		Scan("students", "s").
		Scan("enrollments", "e").
		Scan("courses", "c").
		Filter("c", "credits", stats.OpGe, int64(3)).
		Join("s", "id", "e", "student_id").
		Join("e", "course_id", "c", "id")

	tx := transaction.NewTransaction()
	defer tx.Close()

	root, err := builder.Plan(tx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "plan failed:", err)
		os.Exit(1)
	}

	plan.Explain(os.Stdout, root)
	fmt.Println()
	fmt.Println(plan.Dot(root))
}

func demoCatalog() *catalog.MemoryCatalog {
	rng := rand.New(rand.NewSource(42))
	cat := catalog.NewMemoryCatalog(config.DefaultPageSize)

	students := make([]data.Row, 0, 500)
	for i := 0; i < 500; i++ {
		students = append(students, data.NewRow(map[string]interface{}{
			"id":   int64(i),
			"name": fmt.Sprintf("student-%03d", i),
			"year": int64(1 + rng.Intn(4)),
		}))
	}
	cat.AddTable("students", []catalog.Column{
		{Name: "id", Type: catalog.ColumnTypeInt},
		{Name: "name", Type: catalog.ColumnTypeText},
		{Name: "year", Type: catalog.ColumnTypeInt},
	}, students)

	courses := make([]data.Row, 0, 40)
	for i := 0; i < 40; i++ {
		courses = append(courses, data.NewRow(map[string]interface{}{
			"id":      int64(i),
			"title":   fmt.Sprintf("course-%02d", i),
			"credits": int64(1 + rng.Intn(5)),
		}))
	}
	cat.AddTable("courses", []catalog.Column{
		{Name: "id", Type: catalog.ColumnTypeInt},
		{Name: "title", Type: catalog.ColumnTypeText},
		{Name: "credits", Type: catalog.ColumnTypeInt},
	}, courses)

	enrollments := make([]data.Row, 0, 5000)
	for i := 0; i < 5000; i++ {
		enrollments = append(enrollments, data.NewRow(map[string]interface{}{
			"id":         int64(i),
			"student_id": int64(rng.Intn(500)),
			"course_id":  int64(rng.Intn(40)),
			"grade":      float64(rng.Intn(101)),
		}))
	}
	cat.AddTable("enrollments", []catalog.Column{
		{Name: "id", Type: catalog.ColumnTypeInt},
		{Name: "student_id", Type: catalog.ColumnTypeInt},
		{Name: "course_id", Type: catalog.ColumnTypeInt},
		{Name: "grade", Type: catalog.ColumnTypeFloat},
	}, enrollments)

	if err := cat.CreateIndex("students", "id"); err != nil {
		panic(err)
	}
	if err := cat.CreateIndex("courses", "id"); err != nil {
		panic(err)
	}
	if err := cat.CreateIndex("enrollments", "student_id"); err != nil {
		panic(err)
	}
	return cat
}
