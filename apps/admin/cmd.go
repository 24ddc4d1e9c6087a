package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/matokeo/core/result"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db        *sql.DB
	resultSvc *result.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb - create the app DB and user if missing")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  computesemester -year ID -semester ID - compute and store semester results")
	fmt.Println("  computeyearly -year ID - compute and store yearly results")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	computeSemesterCmd := flag.NewFlagSet("computesemester", flag.ExitOnError)
	computeSemesterYear := computeSemesterCmd.Int("year", 0, "The academic year ID.")
	computeSemesterSem := computeSemesterCmd.Int("semester", 0, "The semester ID.")

	computeYearlyCmd := flag.NewFlagSet("computeyearly", flag.ExitOnError)
	computeYearlyYear := computeYearlyCmd.Int("year", 0, "The academic year ID.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "computesemester":
		if err := computeSemesterCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *computeSemesterYear == 0 || *computeSemesterSem == 0 {
			computeSemesterCmd.Usage()
			return errHelp
		}
		return cli.computeSemester(*computeSemesterYear, *computeSemesterSem)
	case "computeyearly":
		if err := computeYearlyCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *computeYearlyYear == 0 {
			computeYearlyCmd.Usage()
			return errHelp
		}
		return cli.computeYearly(*computeYearlyYear)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) computeSemester(academicYearID, semesterID int) error {
	summary, err := cli.resultSvc.ComputeSemesterResults(context.Background(), academicYearID, semesterID)
	if err != nil {
		return err
	}
	printSummary(summary)
	return nil
}

func (cli *commandLine) computeYearly(academicYearID int) error {
	summary, err := cli.resultSvc.ComputeYearlyResults(context.Background(), academicYearID)
	if err != nil {
		return err
	}
	printSummary(summary)
	return nil
}

func printSummary(summary result.RunSummary) {
	fmt.Printf(
		"considered=%d computed=%d skipped=%d grades=%d\n",
		summary.StudentsConsidered, summary.StudentsComputed, summary.StudentsSkipped, summary.GradesRanked,
	)
}
