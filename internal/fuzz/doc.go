// Package fuzztests houses Go fuzz harnesses for the offline part of a pass:
// the pattern scanner, the color parser and the contrast analyzer. Their goal
// is to catch panics, out-of-bounds spans and runaway matching on arbitrary
// markup.
//
// Назначение: прогонять произвольные байты через FileSet, сканер и анализатор
// контраста и проверять инварианты диагностик.
//
// Не делает: обращений к внешним валидаторам и сервисам.
//
// Зависимости: internal/source, internal/scan, internal/contrast,
// internal/pass, internal/diag, internal/testkit.

package fuzztests
