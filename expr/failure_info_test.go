// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package expr

import (
	"testing"

	"github.com/flowdrop/filterx/evalctx"
	"github.com/flowdrop/filterx/object"
)

func TestFailureInfoEnableThenRecordThenRead(t *testing.T) {
	ctx := evalctx.New(nil)

	enableRes, err := NewFailureInfoEnable(false).Eval(ctx)
	if err != nil {
		t.Fatal(err)
	}
	enableRes.Unref()

	ctx.RecordFailure("loc", "expr", "oops", false)

	infoRes, err := NewFailureInfo().Eval(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer infoRes.Unref()
	n, _ := infoRes.Len()
	if n != 1 {
		t.Fatalf("failure_info() Len() = %d, want 1", n)
	}
}

func TestFailureInfoClearResetsLog(t *testing.T) {
	ctx := evalctx.New(nil)
	enableRes, err := NewFailureInfoEnable(false).Eval(ctx)
	if err != nil {
		t.Fatal(err)
	}
	enableRes.Unref()
	ctx.RecordFailure("loc", "expr", "oops", false)

	clearRes, err := NewFailureInfoClear().Eval(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer clearRes.Unref()
	if !clearRes.Truthy() {
		t.Fatalf("failure_info_clear() should return true")
	}
	if ctx.FailureInfoEnabled() {
		t.Fatalf("failure_info_clear() should disable collection")
	}

	infoRes, err := NewFailureInfo().Eval(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer infoRes.Unref()
	n, _ := infoRes.Len()
	if n != 0 {
		t.Fatalf("failure_info() after clear Len() = %d, want 0", n)
	}
}

func TestFailureInfoMetaNoopWhenCollectionDisabled(t *testing.T) {
	ctx := evalctx.New(nil)
	meta := object.NewDict()
	meta.SetSubscript(object.NewString("k"), object.NewString("v"))

	res, err := NewFailureInfoMeta(meta).Eval(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Unref()
	if err := ctx.FailureInfoMeta(nil); err == nil {
		t.Fatalf("collection was never enabled, so meta should still be unset")
	}
}

func TestFailureInfoMetaAppliesWhenEnabled(t *testing.T) {
	ctx := evalctx.New(nil)
	enableRes, err := NewFailureInfoEnable(false).Eval(ctx)
	if err != nil {
		t.Fatal(err)
	}
	enableRes.Unref()

	meta := object.NewDict()
	meta.SetSubscript(object.NewString("k"), object.NewString("v"))
	res, err := NewFailureInfoMeta(meta).Eval(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Unref()
	if !res.Truthy() {
		t.Fatalf("failure_info_meta() should return true")
	}
}
