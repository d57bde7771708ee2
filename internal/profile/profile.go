// Package profile 定義帳戶持有人的身分鍵 (ProfileKey)。
//
// Profile 由姓、名、出生日期組成，建立後不可變。
// 排序規則：姓（不分大小寫）→ 名（不分大小寫）→ 出生日期。
// 相等性完全由 Compare 是否為 0 決定，確保「唯一性檢查」與「排序」對同一人看法一致。
package profile

import "strings"

// Profile identifies an account holder.
type Profile struct {
	first string
	last  string
	dob   Date
}

// New 建立 Profile；輸入應已由呈現層驗證。
func New(first, last string, dob Date) Profile {
	return Profile{first: first, last: last, dob: dob}
}

func (p Profile) First() string { return p.first }
func (p Profile) Last() string  { return p.last }
func (p Profile) DOB() Date     { return p.dob }

// String 輸出 "John Doe 2/19/2000"。
func (p Profile) String() string {
	return p.first + " " + p.last + " " + p.dob.String()
}

// Compare 回傳負數、0 或正數。
// 同名同姓但生日不同者絕不回傳 0。
func Compare(a, b Profile) int {
	if c := strings.Compare(strings.ToLower(a.last), strings.ToLower(b.last)); c != 0 {
		return c
	}
	if c := strings.Compare(strings.ToLower(a.first), strings.ToLower(b.first)); c != 0 {
		return c
	}
	return a.dob.Compare(b.dob)
}

// Compare 為 Compare(p, other) 的方法形式。
func (p Profile) Compare(other Profile) int {
	return Compare(p, other)
}

// Equal 僅在 Compare 為 0 時成立，不另做欄位比對。
func (p Profile) Equal(other Profile) bool {
	return Compare(p, other) == 0
}
