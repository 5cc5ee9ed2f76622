// Copyright (c) 2024 Richard Shepherd
// SPDX-License-Identifier: Apache-2.0

// graphdemo builds a small currency-holiday graph, adds a holiday to show
// incremental recalculation in action, and prints the graph's
// shape as DOT so it can be pasted into any Graphviz renderer.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/richard-shepherd/calcgraph/examples/holidays"
	"github.com/richard-shepherd/calcgraph/examples/pricing"
	"github.com/richard-shepherd/calcgraph/graph"
)

// logrusAdapter satisfies graph.Logger using a *logrus.Logger.
type logrusAdapter struct {
	log *logrus.Logger
}

func (a logrusAdapter) Noticef(format string, args ...interface{}) { a.log.Infof(format, args...) }
func (a logrusAdapter) Errorf(format string, args ...interface{})  { a.log.Errorf(format, args...) }

func main() {
	debugPtr := flag.Bool("d", false, "Debug logging")
	currencyPairPtr := flag.String("pair", "EUR/USD", "Currency pair to price")
	datePtr := flag.String("date", "2015-07-04", "Date to price, as YYYY-MM-DD")
	flag.Parse()

	logger := logrus.New()
	if *debugPtr {
		logger.SetLevel(logrus.DebugLevel)
	}

	date, err := time.Parse("2006-01-02", *datePtr)
	if err != nil {
		logger.Errorf("invalid -date: %v", err)
		os.Exit(1)
	}

	env := holidays.NewEnvironment()
	mgr := graph.NewGraphManager(env, graph.WithLogger(logrusAdapter{log: logger}))

	priceNode := mgr.GetNode(pricing.PriceBuilder{CurrencyPair: *currencyPairPtr, Date: date}).(*pricing.PriceNode)
	mgr.Calculate()
	fmt.Printf("price of %s on %s: %.2f\n", *currencyPairPtr, *datePtr, priceNode.Price)

	currency1, _ := holidays.SplitCurrencyPair(*currencyPairPtr)
	logger.Infof("adding a holiday for %s on %s", currency1, date.Format("2006-01-02"))
	env.HolidayDB.AddHoliday(currency1, date)
	mgr.Calculate()
	fmt.Printf("price of %s on %s: %.2f\n", *currencyPairPtr, *datePtr, priceNode.Price)

	fmt.Println(graph.RenderDOT(mgr.Dump()))
}
