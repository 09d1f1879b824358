package speaker

// DefaultStyleName はスタイル未指定時に優先するVOICEVOXのスタイル名です。
// 話者にこのスタイルがない場合は、応答で最初に現れたスタイルを既定とします。
const DefaultStyleName = "ノーマル"
