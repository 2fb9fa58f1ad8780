// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package commands. This file defines the command appending the run to the
// BigQuery ledger.
//
// Logic Flow:
//  1. Build a RunRecord from the selection, the published reel and the
//     caption found on the context.
//  2. Stream it into the ledger table with the table's Inserter. The row's
//     insert id is the deterministic run id, so a retried insert is
//     de-duplicated by BigQuery.
package commands

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/cor"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
)

// RowInserter streams rows; *bigquery.Inserter implements it.
type RowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// NewLedgerInserter returns the inserter of dataset.table.
func NewLedgerInserter(client *bigquery.Client, dataset string, table string) *bigquery.Inserter {
	return client.Dataset(dataset).Table(table).Inserter()
}

// RecordRun appends the run to the ledger. Optional.
type RecordRun struct {
	cor.BaseCommand
	inserter RowInserter
}

func NewRecordRun(name string, inserter RowInserter) *RecordRun {
	return &RecordRun{BaseCommand: *cor.NewOptionalCommand(name), inserter: inserter}
}

func (c *RecordRun) IsExecutable(context cor.Context) bool {
	return hasAll(context, ParamSelection)
}

// BuildRunRecord assembles the ledger row from the context.
func BuildRunRecord(context cor.Context) *model.RunRecord {
	record := model.NewRunRecord(GetSelection(context))
	if reel := GetPublished(context); reel != nil {
		record.ObjectKey = reel.Key
	}
	if generated := GetCaption(context); generated != nil {
		record.Caption = generated.Text
		record.CaptionFrom = generated.Source
	}
	return record
}

func (c *RecordRun) Execute(context cor.Context) {
	record := BuildRunRecord(context)
	row := &bigquery.StructSaver{Struct: record, InsertID: record.RunId}
	if err := c.inserter.Put(context.GetContext(), row); err != nil {
		c.Fail(context, fmt.Errorf("bigquery insert failed for day %d: %w", record.Day, err))
		return
	}
	c.Succeed(context)
}
