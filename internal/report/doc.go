// Package report форматирует вывод импортёра.
//
// Reporter не содержит логики: он только печатает сводку загрузки,
// проверки доступности и попыток импорта. При неудаче дополнительно
// печатается инструкция для ручного импорта через UI n8n.
//
// В JSON-режиме (--json) печатается только итоговый ImportResult,
// пригодный для jq.
package report
